// Command balloctl replays allocation traces against a buddy arena and
// prints the resulting block layout.
package main

func main() {
	execute()
}
