// Command chessplay is a placeholder for the teacher's Ebitengine GUI
// entry point. The human-play console/GUI is an external collaborator
// (see SPEC_FULL.md §6) and isn't built here; use cmd/xboard to drive
// the engine from a GUI or scripted opponent instead.
package main

import "fmt"

func main() {
	fmt.Println("chessplay: no GUI is built into this module; run cmd/xboard instead")
}
