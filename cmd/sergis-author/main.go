// Command sergis-author работает с играми SerGIS в локальном хранилище или на сервере авторинга.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
