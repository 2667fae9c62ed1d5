/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/techcabinet/apiserver/cmd"

func main() {
	cmd.Execute()
}
