package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the settings database to reclaim unused space
func Compact(ctx context.Context) {
	s := OpenSessionOrExit(ctx)
	path := s.Store.Path()

	info, err := os.Stat(path)
	if err != nil {
		s.Close()
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := s.Store.Compact(); err != nil {
		s.Close()
		HandleError(err)
	}
	s.Close()

	info, err = os.Stat(path)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
