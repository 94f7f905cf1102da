package prompts

import (
	"fmt"
	"strings"
)

// ============================================================================
// Caption / Vibe Prompts
// ============================================================================

// GeneratorSystemPrompt sets the voice shared by caption and vibe requests.
const GeneratorSystemPrompt = `You write short, funny, cyberpunk-flavoured text for an internet meme marketplace. Answer with the text only: no quotes, no prefixes, no explanations.`

// CaptionPrompt builds the caption instruction for a tag list.
func CaptionPrompt(tags []string) string {
	return fmt.Sprintf(`Generate a funny, cyberpunk-style caption for a meme with these tags: %s. Make it edgy, internet culture aware, and under 100 characters. Examples: "Doge hacks the matrix", "Stonks going to the digital moon", "Error 404: Chill not found"`,
		strings.Join(tags, ", "))
}

// VibePrompt builds the vibe-analysis instruction for a title and tag list.
func VibePrompt(tags []string, title string) string {
	return fmt.Sprintf(`Analyze the vibe of this meme: Title: "%s", Tags: %s. Return a short cyberpunk-style vibe description (2-4 words). Examples: "Neon Crypto Chaos", "Retro Stonks Vibes", "Digital Rebellion Energy", "Matrix Glitch Mode"`,
		title, strings.Join(tags, ", "))
}

// ============================================================================
// Fallbacks
// ============================================================================

// CaptionFallbacks are served when caption generation fails.
var CaptionFallbacks = []string{
	"YOLO to the moon! 🚀",
	"Hack the planet, one meme at a time",
	"404: Normalcy not found",
	"Loading... cyberpunk vibes activated",
	"Glitch in the matrix detected",
}

// VibeFallbacks are served when vibe generation fails.
var VibeFallbacks = []string{
	"Neon Crypto Chaos",
	"Digital Punk Energy",
	"Matrix Glitch Mode",
	"Cyber Stonks Vibes",
	"Retro Future Feels",
}
