package domain

// Question is one entry of the fixed trivia question set.
type Question struct {
	Text   string
	Answer string
}

// CapitalQuestions is the built-in question set about world capitals.
func CapitalQuestions() []Question {
	return []Question{
		{Text: "What is the capital of France?", Answer: "Paris"},
		{Text: "What is the capital of Japan?", Answer: "Tokyo"},
		{Text: "What is the capital of Brazil?", Answer: "Brasília"},
		{Text: "What is the capital of Canada?", Answer: "Ottawa"},
		{Text: "What is the capital of Australia?", Answer: "Canberra"},
		{Text: "What is the capital of Germany?", Answer: "Berlin"},
		{Text: "What is the capital of Egypt?", Answer: "Cairo"},
		{Text: "What is the capital of India?", Answer: "New Delhi"},
		{Text: "What is the capital of Russia?", Answer: "Moscow"},
		{Text: "What is the capital of South Africa?", Answer: "Pretoria"},
		{Text: "What is the capital of Italy?", Answer: "Rome"},
		{Text: "What is the capital of China?", Answer: "Beijing"},
		{Text: "What is the capital of Mexico?", Answer: "Mexico City"},
		{Text: "What is the capital of Argentina?", Answer: "Buenos Aires"},
		{Text: "What is the capital of South Korea?", Answer: "Seoul"},
		{Text: "What is the capital of Spain?", Answer: "Madrid"},
		{Text: "What is the capital of United Kingdom?", Answer: "London"},
		{Text: "What is the capital of United States?", Answer: "Washington DC"},
		{Text: "What is the capital of Saudi Arabia?", Answer: "Riyadh"},
		{Text: "What is the capital of Turkey?", Answer: "Ankara"},
	}
}
