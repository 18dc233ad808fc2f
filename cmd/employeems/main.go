package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/phillip-england/employeems/internal/emscli"
)

func main() {
	if err := emscli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, emscli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			emscli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
