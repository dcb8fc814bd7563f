package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs an ASCII art banner for Gantry.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Cyan)
	s1 := termenv.String("   _____             _              ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("  / ____|           | |             ").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" | |  __  __ _ _ __ | |_ _ __ _   _ ").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String(" | | |_ |/ _` | '_ \\| __| '__| | | |").Foreground(p.Color("#60a5fa"))
	s5 := termenv.String(" | |__| | (_| | | | | |_| |  | |_| |").Foreground(p.Color("#818cf8"))
	s6 := termenv.String("  \\_____|\\__,_|_| |_|\\__|_|   \\__, |").Foreground(p.Color("#a78bfa"))
	s7 := termenv.String("                               __/ |").Foreground(p.Color("#c084fc"))
	s8 := termenv.String("                              |___/ ").Foreground(p.Color("#e879f9"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println(s7)
	fmt.Println(s8)
	fmt.Println()
}
