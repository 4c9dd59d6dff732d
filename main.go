package main

import "github.com/drgolem/ashowinfo/cmd"

func main() {
	cmd.Execute()
}
