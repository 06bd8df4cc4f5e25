package engine

import (
	"encoding/json"

	"github.com/scenesmith/scenesmith/pkg/provider"
)

// ToolGenerateAnimation is the backend-facing name of the render tool.
const ToolGenerateAnimation = "generate_animation"

const systemPrompt = `You are an animation assistant. When the user asks for an animation, write complete Manim Community Edition Python code and pass it to the generate_animation tool. The code must import from manim and define exactly one class inheriting from Scene. Briefly describe what the animation shows before calling the tool. When a render fails, read the error log in the tool output, fix the code, and call the tool again. When the tool output contains the animation's location, tell the user the animation is ready and do not call the tool again.`

func renderTool() provider.Tool {
	return provider.Tool{
		Name:        ToolGenerateAnimation,
		Description: "Render a Manim animation from Python source code and return its location.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"description": "Complete Manim scene source code."
				}
			},
			"required": ["code"]
		}`),
	}
}
