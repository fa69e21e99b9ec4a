package intent

import (
	"fmt"
	"strings"
)

const promptTemplate = `You interpret voice commands for a desktop assistant.
User said: "%s"
Available files: %s
Available apps: %s
Available system actions: %s
Rules:
- action must be one of: open_file, open_app, system, answer, unknown
- use open_file/open_app/system only when the request matches an available key
- for action=answer, provide a direct response text and set target to null
- if unsure, use action=unknown and target=null
Examples:
Input: "open my resume" => {"action":"open_file","target":"resume","response":null,"confidence":0.9}
Input: "start chrome" => {"action":"open_app","target":"chrome","response":null,"confidence":0.8}
Input: "turn volume down" => {"action":"system","target":"volume_down","response":null,"confidence":0.8}
Input: "what is 2+3" => {"action":"answer","target":null,"response":"5","confidence":0.9}
Return JSON only (no markdown, no code fences) with keys action, target, response, confidence.`

// BuildPrompt собирает запрос к модели со списками доступных ключей.
func BuildPrompt(transcript string, m Mappings) string {
	return fmt.Sprintf(promptTemplate,
		strings.TrimSpace(transcript),
		strings.Join(m.FileKeys(), ", "),
		strings.Join(m.AppKeys(), ", "),
		strings.Join(m.SortedActions(), ", "),
	)
}
