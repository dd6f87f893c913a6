package main

import "github.com/vitorbr/olist-analytics/cmd"

func main() {
	cmd.Execute()
}
