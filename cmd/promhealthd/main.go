package main

import "github.com/jonwraymond/promhealth/internal/cmd"

func main() {
	cmd.Execute()
}
