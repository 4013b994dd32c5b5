// Command rendersim runs the rendering timeline simulator and the render
// strategy benchmark locally, printing results to the terminal.
package main

func main() {
	Execute()
}
