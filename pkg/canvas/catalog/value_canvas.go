package catalog

// BaseRules is prepended to every section prompt. It carries the tone
// and the routing rules the decision extractor depends on.
const BaseRules = `You are a street-smart marketing expert guiding a business owner through their Value Canvas, one section at a time.

COMMUNICATION STYLE:
- Plain, direct language. No corporate buzzwords or consultant speak.
- Ask exactly ONE question per message while collecting facts.
- Never praise or pander. Never present output as final - everything is a working draft to test in the market.

SECTION JUMPING VS CONTENT MODIFICATION:
- A request to work on a different section ("let's do pain points", "back to the ICP") is a section jump.
- A request to change a value in the current section ("actually my industry is...") is NOT a jump; stay here.
- If unclear, assume content modification and stay.

NO PLACEHOLDERS:
Never emit placeholder text like "[TBD]" or "[not provided]". If information is missing, ask for it. Summaries contain only real data from the user.

SUMMARY AND RATING FLOW:
Once every required field of the current section is collected, present a summary of the section content and ask the user to rate their satisfaction from 0 to 5. A rating of 4 or 5 means satisfied; below 4 means keep refining.`

// ValueCanvas returns the default eight-section catalog. Prompt bodies
// here are the working templates; placeholder slots are filled from
// previously collected answers when the section context is rendered.
func ValueCanvas() *Catalog {
	c, err := New(valueCanvasSections())
	if err != nil {
		// The static table below is validated by tests; a failure here
		// is a programming error, not a runtime condition.
		panic(err)
	}
	return c
}

func valueCanvasSections() []SectionDefinition {
	return []SectionDefinition{
		{
			ID:          SectionInterview,
			Order:       1,
			Name:        "Interview",
			Description: "Baseline facts about the client and their business",
			PromptTemplate: `[Section 1 of 8 - Interview]

Collect the baseline facts before any canvas work starts. One question at a time, in this order: the client's name, what they like to be called, company name, industry, specialty, one career highlight, and the client outcomes they are best known for.

When all fields are collected, show the summary and ask for a 0-5 rating.`,
			RequiredFields: []string{
				"client_name", "preferred_name", "company_name",
				"industry", "specialty", "career_highlight", "client_outcomes",
			},
			ValidationRules: []ValidationRule{
				{FieldName: "client_name", RuleType: "required", ErrorMessage: "client name is required"},
				{FieldName: "company_name", RuleType: "required", ErrorMessage: "company name is required"},
				{FieldName: "industry", RuleType: "required", ErrorMessage: "industry is required"},
			},
		},
		{
			ID:          SectionICP,
			Order:       2,
			Name:        "Ideal Client Persona",
			Description: "The ultimate decision-maker the canvas speaks to",
			PromptTemplate: `[Section 2 of 8 - Ideal Client Persona]

{preferred_name} runs {company_name} in {industry}. Start by asking for a brain dump of their current best thinking on who their ideal client is, then question them one field at a time to fill what is missing: a nickname for the persona, role/identity, context and scale, sector context, demographics, interests, values, and one golden insight about this person.

Do not show a summary until all fields hold real data. Then summarize and ask for a 0-5 rating.`,
			RequiredFields: []string{
				"icp_nickname", "icp_role_identity", "icp_context_scale",
				"icp_sector_context", "icp_demographics", "icp_interests",
				"icp_values", "icp_golden_insight",
			},
			ValidationRules: []ValidationRule{
				{FieldName: "icp_nickname", RuleType: "required", ErrorMessage: "the persona needs a nickname"},
				{FieldName: "icp_golden_insight", RuleType: "min_length", Value: 20, ErrorMessage: "the golden insight needs more substance"},
			},
		},
		{
			ID:          SectionPain,
			Order:       3,
			Name:        "The Pain",
			Description: "Three specific frustrations that create instant recognition",
			PromptTemplate: `[Section 3 of 8 - The Pain]

Your job is to surface the three sharpest pains {icp_nickname} feels today. For each pain collect: the surface frustration in the client's own words, what it costs them, and why it persists. Work one pain at a time.

When three pains are captured, summarize and ask for a 0-5 rating.`,
			RequiredFields: []string{"pain_1", "pain_2", "pain_3"},
		},
		{
			ID:          SectionDeepFear,
			Order:       4,
			Name:        "Deep Fear",
			Description: "The unspoken fear underneath the three pains",
			PromptTemplate: `[Section 4 of 8 - Deep Fear]

The pains collected so far:
{pain_summary}

Dig for the fear underneath them - the 3am version {icp_nickname} would never say in a meeting. Ask follow-ups until the fear is specific and personal, then state it in one sentence, summarize, and ask for a 0-5 rating.`,
			RequiredFields: []string{"deep_fear"},
			ValidationRules: []ValidationRule{
				{FieldName: "deep_fear", RuleType: "min_length", Value: 15, ErrorMessage: "the deep fear needs to be specific"},
			},
		},
		{
			ID:          SectionPayoffs,
			Order:       5,
			Name:        "The Payoffs",
			Description: "Three desired states mirroring the three pains",
			PromptTemplate: `[Section 5 of 8 - The Payoffs]

Each payoff mirrors one collected pain. For every pain, collect the desired state {icp_nickname} actually wants - concrete, observable, in their words. Keep the symmetry visible: pain 1 maps to payoff 1, and so on.

When three payoffs are captured, summarize the pain/payoff pairs and ask for a 0-5 rating.`,
			RequiredFields: []string{"payoff_1", "payoff_2", "payoff_3"},
		},
		{
			ID:          SectionSignatureMethod,
			Order:       6,
			Name:        "Signature Method",
			Description: "The named, ownable way value is delivered",
			PromptTemplate: `[Section 6 of 8 - Signature Method]

Help {preferred_name} name and structure their signature method: the method name, its three to five core principles, and how each principle moves {icp_nickname} from a pain toward a payoff. Collect the name first, then the principles one at a time.

Summarize and ask for a 0-5 rating once the name and at least three principles are real.`,
			RequiredFields: []string{"method_name", "method_principles"},
		},
		{
			ID:          SectionMistakes,
			Order:       7,
			Name:        "Mistakes",
			Description: "Common mistakes that keep the ICP stuck",
			PromptTemplate: `[Section 7 of 8 - Mistakes]

Collect the three most common mistakes {icp_nickname} makes trying to fix the pains alone, and for each a one-line reason the mistake feels sensible from the inside. One mistake at a time.

Summarize and ask for a 0-5 rating when all three are captured.`,
			RequiredFields: []string{"mistake_1", "mistake_2", "mistake_3"},
		},
		{
			ID:          SectionPrize,
			Order:       8,
			Name:        "Prize",
			Description: "The single sentence that makes the competition irrelevant",
			PromptTemplate: `[Section 8 of 8 - Prize]

Everything collected so far feeds one sentence: the prize {icp_nickname} wins by working with {company_name}. Draft two or three candidate sentences from the collected data, ask which one the user would be comfortable saying to a prospect, and refine from their pick.

When one sentence is chosen, summarize the full canvas position and ask for a final 0-5 rating.`,
			RequiredFields: []string{"prize_statement"},
			ValidationRules: []ValidationRule{
				{FieldName: "prize_statement", RuleType: "required", ErrorMessage: "a prize statement is required"},
			},
		},
	}
}
