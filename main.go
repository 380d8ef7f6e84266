/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/nakachan-ing/daytask/cmd"

func main() {
	cmd.Execute()
}
