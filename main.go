package main

import "github.com/KaramelBytes/cohortlens/cmd"

func main() {
	cmd.Execute()
}
