package ollama

// garmentDescriptionPrompt mirrors the cataloging brief given to the vision
// model: structured, fashion-industry terminology, with a fixed summary
// sentence shape the downstream rewriting stage can rely on.
const garmentDescriptionPrompt = `You are a fashion expert analyzing a clothing item for visual search.
Describe the item in detail for cataloging purposes. Your description should include:
- Any visible branding, logos, or accessories.
- Pattern.
- Type of garment (e.g., shirt, pants, jacket).
- Material, texture, and base color.
- Style elements (e.g., fit, collar type, length, sleeve type).
- Gender orientation (male, female, unisex) based on cut, styling, and overall design.
Use fashion-industry standard terminology.
Conclude with a structured summary in this format:
Includes [Brand] if identifiable. It features a [pattern] pattern.
It is a [baseColour] [articleType] designed for [gender].
Best used in [usage] during [season].`
