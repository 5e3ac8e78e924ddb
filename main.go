package main

import "github.com/Procodx/familyGuardian/cmd"

func main() {
	cmd.Execute()
}
