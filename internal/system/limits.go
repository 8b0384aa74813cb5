//go:build linux || darwin

package system

import (
	"fmt"
	"log"
	"syscall"
)

// MinOpenFiles - сколько открытых файлов нужно плееру (кадры, ffmpeg, PDF).
const MinOpenFiles = 2048

// InitResourceLimits поднимает лимит открытых файлов до MinOpenFiles.
// Лимит никогда не уменьшается и не превышает жесткий предел.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	want := uint64(MinOpenFiles)
	if want > rLimit.Max {
		want = rLimit.Max
	}
	if rLimit.Cur >= want {
		return
	}
	rLimit.Cur = want

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
		return
	}
	fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
}
