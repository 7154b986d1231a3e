package main

import "github.com/Yates-Labs/sage/cmd"

func main() {
	cmd.Execute()
}
