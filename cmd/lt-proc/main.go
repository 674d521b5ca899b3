// Command lt-proc runs compiled letter-transducer dictionaries over text.
package main

func main() {
	execute()
}
