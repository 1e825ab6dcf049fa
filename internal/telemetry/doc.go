// Package telemetry обеспечивает наблюдаемость запуска.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// CLI живёт один запуск, поэтому метрики не отдаются на /metrics,
// а записываются в textfile для node_exporter и/или отправляются
// в Pushgateway по завершении run.
package telemetry
