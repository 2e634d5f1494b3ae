package main

import (
	"github.com/mkuu/darasa/storage/bootstrap"
)

func (cli *commandLine) seed() error {
	return cli.st.Hydrate(bootstrap.NewDir(cli.conf.BootstrapDir))
}
