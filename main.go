package main

import "github.com/kdwils/eth-faucet-web/cmd"

func main() {
	cmd.Execute()
}
