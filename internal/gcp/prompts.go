package gcp

// --- Flowchart Model Prompts ---
// FlowchartPromptTemplate takes the story text as its only argument.
const FlowchartPromptTemplate = `System Instruction:
You are an expert system designed to analyze a story and convert it into a structured flowchart format.
Your sole output must be a single, valid JSON object representing the story's flow.
The JSON object should include:
- "diagram_type": "flowchart"
- "nodes": [{"id":"...","label":"...","shape":"..."}]
- "edges": [{"from":"...","to":"...","label":"..."}]
---
Story Input:
%s
---
Expected JSON Output:`

// --- Rewriter Model Prompts ---
// RewritePromptTemplate takes the original story, the indented flowchart JSON
// and the user's request, in that order.
const RewritePromptTemplate = `You are a creative storyteller for children. Rewrite the story based on the user's "what if" request.
Use the provided structural flowchart of the original story as context.
Your response must ONLY be the complete, new version of the story, with no preamble or epilogue.

Original Story:
---
%s
---

Story Flowchart (context):
---
%s
---

User's "What If" Request:
---
%s
---`
