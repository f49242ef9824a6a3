/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/draconic-rules/cmd"

func main() {
	cmd.Execute()
}
