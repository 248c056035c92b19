package main

import "github.com/dbsmedya/jsonconv/cmd/jsonconv/cmd"

func main() {
	cmd.Execute()
}
