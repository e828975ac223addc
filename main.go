// @title        Prompt Forge API
// @version      1.0
// @description  Prompt generation service: forwards text prompts to a generative-content provider.
// @BasePath     /
package main

import (
	"os"

	"promptforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
