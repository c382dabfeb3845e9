package taxonomy

// DefaultAwards returns the built-in award catalogue.
func DefaultAwards() []Award {
	return []Award{
		{
			Key:         "leadership",
			DisplayName: "Internationalization (IZN) Leadership Award",
			Criteria: []Criterion{
				{
					Name:         "Champion Bold Innovation",
					Keywords:     []string{"innovation", "innovative", "bold", "champion", "pioneering", "breakthrough"},
					HighPriority: true,
					Suggestions: []string{
						"Create documents showcasing innovative international programs",
						"Document cutting-edge research collaborations",
						"Showcase pioneering educational initiatives",
						"Record breakthrough technology implementations",
					},
				},
				{
					Name:     "Cultivate Global Citizens",
					Keywords: []string{"global", "citizens", "citizenship", "exchange", "cultural", "immersion"},
					Suggestions: []string{
						"Document student exchange programs",
						"Record cultural immersion activities",
						"Showcase global citizenship education initiatives",
						"Document international student success stories",
					},
				},
				{
					Name:     "Nurture Lifelong Learning",
					Keywords: []string{"lifelong", "learning", "continuing", "education", "alumni", "professional"},
					Suggestions: []string{
						"Document continuing education programs",
						"Record professional development opportunities",
						"Showcase alumni engagement activities",
						"Document skill development initiatives",
					},
				},
				{
					Name:     "Lead with Purpose",
					Keywords: []string{"purpose", "strategic", "vision", "mission", "planning", "leadership"},
					Suggestions: []string{
						"Document strategic planning initiatives",
						"Record vision statements and mission alignment",
						"Showcase leadership development programs",
						"Document organizational transformation efforts",
					},
				},
				{
					Name:     "Ethical and Inclusive Leadership",
					Keywords: []string{"ethical", "ethics", "inclusive", "inclusion", "diversity", "equity"},
					Suggestions: []string{
						"Document diversity and inclusion programs",
						"Record ethical guidelines and policies",
						"Showcase inclusive policy implementations",
						"Document equity-focused initiatives",
					},
				},
			},
		},
		{
			Key:         "education",
			DisplayName: "Outstanding International Education Program Award",
			Criteria: []Criterion{
				{
					Name:         "Expand Access to Global Opportunities",
					Keywords:     []string{"access", "scholarship", "opportunities", "global", "mobility", "partnerships"},
					HighPriority: true,
					Suggestions: []string{
						"Document scholarship programs",
						"Record international partnerships",
						"Showcase accessibility initiatives",
						"Document global opportunity expansion efforts",
					},
				},
				{
					Name:     "Foster Collaborative Innovation",
					Keywords: []string{"collaborative", "collaboration", "joint", "research", "innovation", "partnership"},
					Suggestions: []string{
						"Document joint research projects",
						"Record international collaborations",
						"Showcase innovative program partnerships",
						"Document cross-institutional initiatives",
					},
				},
				{
					Name:     "Embrace Inclusivity and Beyond",
					Keywords: []string{"inclusivity", "inclusive", "diversity", "equity", "accessible", "belonging"},
					Suggestions: []string{
						"Document inclusive practices",
						"Record diversity initiatives",
						"Showcase equity-focused programs",
						"Document inclusive policy implementations",
					},
				},
			},
		},
		{
			Key:         "emerging",
			DisplayName: "Emerging Leadership Award",
			Criteria: []Criterion{
				{
					Name:         "Innovation",
					Keywords:     []string{"innovation", "creative", "pioneering"},
					HighPriority: true,
					Suggestions: []string{
						"Document new approaches and methodologies",
						"Record creative solutions to challenges",
						"Showcase breakthrough initiatives",
						"Document innovative program designs",
					},
				},
				{
					Name:     "Strategic and Inclusive Growth",
					Keywords: []string{"strategic", "growth", "expansion", "inclusive", "development"},
					Suggestions: []string{
						"Document growth strategies and plans",
						"Record expansion initiatives",
						"Showcase inclusive development programs",
						"Document strategic partnerships",
					},
				},
				{
					Name:     "Empowerment of Others",
					Keywords: []string{"empowerment", "mentoring", "mentorship", "capacity", "coaching"},
					Suggestions: []string{
						"Document mentoring programs",
						"Record capacity building initiatives",
						"Showcase empowerment-focused activities",
						"Document leadership development efforts",
					},
				},
			},
		},
		{
			Key:         "regional",
			DisplayName: "Best Regional Office for Internationalization Award",
			Criteria: []Criterion{
				{
					Name:         "Comprehensive Internationalization Efforts",
					Keywords:     []string{"internationalization", "comprehensive", "holistic", "portfolio", "integrated"},
					HighPriority: true,
					Suggestions: []string{
						"Document holistic internationalization strategies",
						"Record comprehensive program portfolios",
						"Showcase integrated approaches",
						"Document systematic internationalization plans",
					},
				},
				{
					Name:     "Cooperation and Collaboration",
					Keywords: []string{"cooperation", "collaboration", "partnership", "agreement", "alliance", "consortium"},
					Suggestions: []string{
						"Document partnership agreements",
						"Record collaborative projects",
						"Showcase cooperative initiatives",
						"Document joint ventures and alliances",
					},
				},
				{
					Name:     "Measurable Impact",
					Keywords: []string{"measurable", "impact", "outcomes", "metrics", "results", "kpi"},
					Suggestions: []string{
						"Document outcomes and results",
						"Record metrics and KPIs",
						"Showcase success stories",
						"Document quantifiable achievements",
					},
				},
			},
		},
		{
			Key:         "global",
			DisplayName: "Global Citizenship Award",
			Criteria: []Criterion{
				{
					Name:         "Ignite Intercultural Understanding",
					Keywords:     []string{"intercultural", "understanding", "cross-cultural", "dialogue", "awareness"},
					HighPriority: true,
					Suggestions: []string{
						"Document cultural exchange programs",
						"Record intercultural dialogue initiatives",
						"Showcase cultural awareness activities",
						"Document cross-cultural learning experiences",
					},
				},
				{
					Name:     "Empower Changemakers",
					Keywords: []string{"changemakers", "change", "social", "empower", "advocacy"},
					Suggestions: []string{
						"Document leadership development programs",
						"Record change initiatives",
						"Showcase empowerment-focused activities",
						"Document social impact projects",
					},
				},
				{
					Name:     "Cultivate Active Engagement",
					Keywords: []string{"engagement", "community", "civic", "volunteer", "participation", "active"},
					Suggestions: []string{
						"Document community engagement programs",
						"Record participatory initiatives",
						"Showcase active involvement activities",
						"Document civic engagement efforts",
					},
				},
			},
		},
	}
}

// Default builds the built-in taxonomy. It panics only if the catalogue
// above is edited into an invalid state.
func Default() *Taxonomy {
	t, err := New(DefaultAwards())
	if err != nil {
		panic(err)
	}
	return t
}
