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
			fmt.Fprintln(os.Stderr, "usage: employeems setup [--api-base-url url] [--force]")
			fmt.Fprintln(os.Stderr, "       employeems run client|stub|all")
			fmt.Fprintln(os.Stderr, "       employeems export --email <email> --password <password> [--out employees.xlsx]")
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
