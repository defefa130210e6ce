package main

import "github.com/bardbit/stremio-mdblist-importer/cmd"

func main() {
	cmd.Execute()
}
