// Command coop_cli runs the payment import pipeline and ledger checks from a terminal.
//
//	coop_cli template --format xlsx
//	coop_cli import pembayaran.csv --members anggota.csv
//	coop_cli check --repair
package main

func main() {
	Execute()
}
