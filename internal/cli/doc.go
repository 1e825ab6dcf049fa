// Package cli реализует команды pairalign.
//
// # Обзор
//
// CLI — единственная точка входа: каждая команда run выполняет один
// образец в текущем процессе. Журнал (PostgreSQL) и события (RabbitMQ)
// подключаются, только если заданы в конфигурации.
//
// # Ключевые компоненты
//
// ## Env
//
// Окружение команд: загруженная конфигурация и логгер. Создаётся
// в PersistentPreRunE корневой команды, после разбора флагов.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) и логи — в stderr.
// Это позволяет использовать pipe: pairalign run --dry-run --json | jq .
//
// ## Commands
//
//   - run: выравнивание одного образца (или план с --dry-run)
//   - references: таблица сборок и индексов
//   - history: list, show — runs из журнала
//   - watch: события run из RabbitMQ
//
// Каждая команда создаётся через фабричную функцию (NewRunCmd и т.д.),
// принимающую envFn и outputFn — замыкания для ленивого создания
// Env и Output после парсинга PersistentFlags.
package cli
