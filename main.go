package main

import "pburn/cmd"

func main() {
	cmd.Execute()
}
