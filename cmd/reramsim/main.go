// The reramsim command runs an asymmetric-latency memory simulation with
// region-level hot/cold migration and records the results.
package main

func main() {
	Execute()
}
