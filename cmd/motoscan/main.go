package main

import "github.com/motoforense/motoscan/cmd/motoscan/cmd"

func main() {
	cmd.Execute()
}
