package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/smartbot/core"
	"github.com/poiesic/smartbot/corpus"
)

var pairs = []core.QAEntry{
	{Question: "What courses do you offer?", Answer: "We offer courses in data science, web development, cloud computing and machine learning."},
	{Question: "What is the price of the data science course?", Answer: "The data science course costs $499 for the full program."},
	{Question: "What is the price of the web development course?", Answer: "The web development course costs $349 for the full program."},
	{Question: "How long does the data science course take?", Answer: "The data science course runs for 16 weeks with two live sessions per week."},
	{Question: "How long does the web development course take?", Answer: "The web development course runs for 12 weeks with two live sessions per week."},
	{Question: "Do you provide a certificate after completion?", Answer: "Yes, you receive a verified certificate once you complete all modules and the final project."},
	{Question: "Is there a free trial available?", Answer: "Yes, the first module of every course is free to try."},
	{Question: "What is the refund policy?", Answer: "You can request a full refund within 14 days of purchase if you have completed less than 20% of the course."},
	{Question: "How do I request a refund?", Answer: "Email support with your order id and the refund is processed within 5 business days."},
	{Question: "Do you offer any discounts?", Answer: "We offer a 20% discount for students and a 15% discount when you enroll in two or more courses."},
	{Question: "Can I pay in installments?", Answer: "Yes, every course can be paid in three monthly installments at no extra cost."},
	{Question: "What payment methods do you accept?", Answer: "We accept credit cards, debit cards, UPI and net banking."},
	{Question: "Are the classes live or recorded?", Answer: "Classes are live, and every session is recorded so you can watch it later."},
	{Question: "Can I access the course material after it ends?", Answer: "Yes, you keep lifetime access to all recordings and materials."},
	{Question: "Do I need prior programming experience?", Answer: "No prior experience is needed for the beginner tracks; advanced tracks list their prerequisites on the course page."},
	{Question: "What are the prerequisites for the machine learning course?", Answer: "You should be comfortable with Python basics and high school level mathematics."},
	{Question: "Do you help with job placement?", Answer: "Yes, we run resume reviews, mock interviews and share openings from our hiring partners."},
	{Question: "How do I contact support?", Answer: "You can reach support by email or through the chat widget, every day between 9 AM and 9 PM."},
	{Question: "How do I reset my password?", Answer: "Use the forgot password link on the login page and follow the email instructions."},
	{Question: "Can I switch to a different course after enrolling?", Answer: "Yes, you can switch once within the first two weeks at no charge."},
	{Question: "Is there a mobile app?", Answer: "Yes, the app is available for Android and iOS with offline downloads."},
	{Question: "Do you offer corporate training?", Answer: "Yes, we build custom programs for teams of five or more. Contact sales for a quote."},
	{Question: "What happens if I miss a live class?", Answer: "Every live class is recorded and uploaded within 24 hours, so nothing is lost."},
	{Question: "Are there assignments and projects?", Answer: "Each module ends with a graded assignment and every course has one capstone project."},
	{Question: "Who are the instructors?", Answer: "All instructors are industry practitioners with at least five years of experience."},
	{Question: "Can I get a demo class before paying?", Answer: "Yes, book a free demo class from the course page and pick a slot that suits you."},
	{Question: "Do you offer scholarships?", Answer: "Merit scholarships covering up to 50% of the fee are awarded every quarter."},
	{Question: "What is the class size?", Answer: "Live batches are capped at 30 learners so everyone gets attention."},
	{Question: "Is the certificate recognized by employers?", Answer: "Our certificates are shareable on LinkedIn and recognized by our 200+ hiring partners."},
	{Question: "How do I track my order?", Answer: "Open the orders page in your account to see the current status of every purchase."},
}

var (
	srcFileName = flag.String("src", "", "existing dataset JSON to merge with the samples")
	outFileName = flag.String("out", "./dataset.json", "path to write the dataset JSON")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

type record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func main() {
	entries := pairs

	if *srcFileName != "" {
		existing, err := corpus.LoadDataset(*srcFileName)
		if err != nil {
			panic(err)
		}
		entries = append(existing, entries...)
	}

	records := make([]record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, record{Question: entry.Question, Answer: entry.Answer})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile(*outFileName, data, 0o644); err != nil {
		panic(err)
	}

	slog.Info("dataset written", "path", *outFileName, "entries", len(entries))
}
