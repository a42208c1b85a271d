/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/vdt/jetpants/cmd"

func main() {
	cmd.Execute()
}
