// Package orchestrator выполняет один run выравнивания образца.
//
// Orchestrator отвечает за:
//   - Валидацию запроса и построение плана (Plan), без запуска процессов
//   - Распаковку входных файлов
//   - Основной проход и проход spike-in
//   - Размещение выходных файлов в назначении
//   - Запись жизненного цикла run в журнал, события и метрики
//
// Все ошибки валидации обнаруживаются в Plan, до запуска первого
// внешнего процесса. Рабочая директория передаётся явно; текущая
// директория процесса не меняется.
package orchestrator
