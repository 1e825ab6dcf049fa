// Package process запускает внешние программы (bowtie2, zcat, pigz).
//
// # Обзор
//
// Runner — интерфейс запуска одного domain.Invocation. Реализация
// ExecRunner вызывает программу напрямую через os/exec, без shell:
// перенаправление stdout в файл (">" или ">>") выполняется открытием
// файла с O_TRUNC или O_APPEND.
//
//	runner := process.NewExecRunner("/data/sample1", logger)
//	err := runner.Run(ctx, &inv)
//
// Ненулевой код выхода или ошибка запуска возвращается как
// domain.ErrExternalProcessFailure с хвостом stderr процесса.
//
// Runner не знает о рабочем каталоге процесса CLI: относительные пути
// в аргументах и в Output разрешаются относительно директории,
// переданной в NewExecRunner.
package process
