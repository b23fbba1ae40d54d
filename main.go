package main

import "taskmaster.com/taskmaster/cmd"

func main() {
	cmd.Execute()
}
