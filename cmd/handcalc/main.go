// Command handcalc serves a webcam calculator driven by hand gestures.
package main

func main() {
	Execute()
}
