package main

import "github.com/ethanolivertroy/secreport/cmd"

func main() {
	cmd.Execute()
}
