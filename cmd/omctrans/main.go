package main

import (
	"github.com/yuyuuuuuuuuuuuu/omc-translations/cmd/omctrans/cli"
)

func main() {
	cli.Execute()
}
