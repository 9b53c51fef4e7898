package main

import "github.com/selimozcann/StoreHunter/cmd"

func main() {
	cmd.Execute()
}
