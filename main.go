package main

import "github.com/ridoystarlord/reportmerge/cmd"

func main() {
	cmd.Execute()
}
