// pairalign — выравнивание paired-end ридов одного образца bowtie2
// на основную сборку и сборку spike-in.
//
// Использование:
//
//	pairalign [--config FILE] [--json] [--log-level LEVEL] <command> [flags]
//
// Команды:
//
//	run         Выравнивание образца (--dry-run — только план)
//	references  Таблица сборок и индексов
//	history     Журнал запусков (нужен database_url)
//	watch       События run (нужен amqp_url)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/pairalign/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// SIGINT/SIGTERM отменяют контекст и завершают текущий bowtie2
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
