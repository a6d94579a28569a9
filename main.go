package main

import "judge-sync/cmd"

func main() {
	cmd.Execute()
}
