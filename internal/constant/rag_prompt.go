package constant

// RelevanceGradePrompt asks the model for a binary relevance judgement on a
// single retrieved document. Keep the contract minimal: the grader only needs
// a yes/no and must stay cheap since it runs once per candidate document.
const RelevanceGradePrompt = `You are a grader assessing the relevance of a retrieved document to a user question.
If the document shares keywords or semantic meaning with the question, grade it as relevant.
This does not need to be strict; the goal is only to filter out clearly wrong documents.

Retrieved document:
%s

User question: %s

Respond with JSON only: {"binary_score": "yes"} or {"binary_score": "no"}`

// AnswerSystemPrompt frames the generation stage. The retrieved context goes
// into the system message so the conversation history stays natural.
const AnswerSystemPrompt = `You are a helpful assistant. Answer the user's question based on the retrieved context below.
If the context cannot answer the question, say you don't know.

Context:
%s`
