package main

import (
	"fmt"
	"os"

	"github.com/shaobohan917/douyin-toolbox/cmd/dytool/cmd"
	"github.com/shaobohan917/douyin-toolbox/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
