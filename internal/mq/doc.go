// Package mq публикует события жизненного цикла run в RabbitMQ.
//
// Структура:
//   - connection.go — соединение и канал
//   - topology.go   — exchange и очередь событий
//   - publisher.go  — публикация событий run
//   - watch.go      — подписка на события (команда watch)
//
// Типы сообщений:
//   - run.started    — run перешёл в RUNNING
//   - run.completed  — run завершился успешно, payload содержит выходные файлы
//   - run.failed     — run завершился с ошибкой
//
// Exchanges:
//   - pairalign.runs — topic, routing key совпадает с типом сообщения
package mq
