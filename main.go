package main

import "github.com/Kariuki90/car-marketplace/cmd"

func main() {
	cmd.Execute()
}
