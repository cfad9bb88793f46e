package flows

const paperInfoSystemPrompt = "You are an AI assistant tasked with extracting the title and authors from a research paper's Markdown text."

const paperInfoTemplate = "Extract the title and a list of authors from the following Markdown text. " +
	"The title is typically the first heading or prominent text, and authors are usually listed below it:\n\n{{first_100_lines}}"

const draftSystemPrompt = "You are an AI expert who enjoys sharing interesting papers and articles with a professional audience."

const draftTemplate = `
## The task to do
As an AI expert that likes to share interesting papers and articles, write the best possible LinkedIn post to introduce a new research paper "{{title_str}}" from {{authors_str}}. Use the full Markdown content of the paper provided below to inform your post.

## Paper Content
{{markdown_content}}

## Message to convey
Start with an intriguing question to capture attention, applying a psychology framework to maximize engagement and encourage sharing.

Structure the post in:

WHY -> WHAT -> HOW

Explain concepts clearly and simply, as if teaching a curious beginner, without citing any specific teaching methods.
Use the Richard Feynman technique to ensure clarity and understanding. Never cite Feynman explicitly.

## Recommendations
- Use Markdown formatting, keeping the post around or under {{max_character_count}} characters.
- Follow best practices for tutorials: short paragraphs, bullet points, and subheadings.
- Maintain a professional tone.
- Avoid emojis, bold, or italic text.
- Use 👉 to introduce sections.
- Focus on substance over hype. Avoid clichéd phrases like 'revolution', 'path forward', 'new frontier', 'real-world impact', 'future of', 'step forward', 'groundbreaking', or 'game-changer'. Use clear, concise, original language instead.
- Keep it non-jargony, precise, engaging, and pleasant to read.
- Avoid clichéd openings like "In the realm of..." or "In the rapidly evolving field...".
- Suggest a compelling title for the post.
`

const formatSystemPrompt = "You are an expert LinkedIn post formatter who prepares content for direct publishing."

const formatTemplate = `
Format the following draft LinkedIn post for direct publishing:

{{draft_post_content}}

Instructions:
1. Remove any draft indicators, meta-comments, or markdown formatting symbols like ## or **.
2. Start directly with the title.
3. Ensure the formatting is clean and ready for LinkedIn publishing.
4. Keep all the valuable content but remove anything that suggests this is a draft or template.
5. Maintain the 👉 emoji for section introductions.
6. Output only the ready-to-publish content with no additional comments.
7. Preserve paragraph breaks and bullet points in a LinkedIn-friendly format.
8. Ensure no Hashtags or links are included in the post.
`
