package main

import "github.com/Digital-Shane/season-remux/internal/cmd"

func main() {
	cmd.Execute()
}
