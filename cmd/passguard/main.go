package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvaldes/passguard/cli"
	"github.com/mvaldes/passguard/vault"
)

func main() {
	dir, err := cli.DataDir()
	if err != nil {
		fmt.Println("Error resolving data directory:", err)
		os.Exit(1)
	}

	master := vault.NewMasterSecret(filepath.Join(dir, cli.VerifierFile))
	if !master.Configured() {
		if err := cli.SetupMaster(master); err != nil {
			fmt.Println("Error setting up master password:", err)
			os.Exit(1)
		}
	}

	cli.ClearScreen()
	key, err := cli.UnlockLoop(master)
	if err != nil {
		fmt.Println("Error unlocking vault:", err)
		os.Exit(1)
	}

	storePath := filepath.Join(dir, cli.StoreFile)
	v, err := vault.Open(storePath, key)
	vault.Zero(key)
	if err != nil {
		fmt.Println("Error opening vault:", err)
		os.Exit(1)
	}
	defer v.Close()

	cli.Run(v, master, storePath)
}
