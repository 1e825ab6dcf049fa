// Package pairing находит входные FASTQ файлы образца и раскладывает их
// на пары read-1/read-2.
//
// Включает:
//   - discover.go — поиск файлов в рабочей директории
//   - classify.go — классификация по маркерам _R1_ / _R2_
//   - naming.go   — имена выходных SAM файлов
//
// Пары строятся по лексикографической сортировке имён: файлы R1 и R2
// одной дорожки должны сортироваться одинаково с точностью до маркера.
// Вся валидация выполняется до запуска внешних процессов.
package pairing
