package main

import "github.com/chrisdamba/backoffice/cmd"

func main() {
	cmd.Execute()
}
