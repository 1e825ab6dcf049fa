// Package align строит вызовы bowtie2 для прохода выравнивания.
//
// Проход — N вызовов для N пар одного образца против одного индекса.
// Все вызовы пишут в один SAM файл:
//
//	bowtie2 <preset> -x idx -1 L001_R1 -2 L001_R2 >  sample.sam
//	bowtie2 --no-head <preset> -x idx -1 L002_R1 -2 L002_R2 >> sample.sam
//
// Первый вызов перезаписывает файл и выводит заголовок, остальные
// дописывают записи без заголовка. Поэтому вызовы одного прохода
// выполняются строго по порядку (см. process.RunSequence).
//
// Параметры выравнивания задаются структурой Preset и не зашиты
// в код запуска.
package align
