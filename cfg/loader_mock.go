package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "github-leadgen",
			Version: "0.0.1",
		},

		// Database
		Database: Database{
			Driver: "sqlite",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "github_leadgen",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Sqlite
		Sqlite: Sqlite{
			Path: "file::memory:?cache=shared",
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			ApiUrl:            "https://api.github.com",
			GraphqlUrl:        "https://api.github.com/graphql",
			RequestsPerSecond: 5,
			ThrottleDelay:     200,
			RateLimitResetMin: 60,
			PerPage:           100,
		},

		// Crawler
		Crawler: Crawler{
			Seeds:               []string{},
			MaxDepth:            3,
			BatchSize:           5,
			ExpansionThreshold:  60,
			FollowerThreshold:   85,
			FollowingMultiplier: 1.0,
			FollowerMultiplier:  0.7,
			SeedDefaultRating:   90,
		},

		// Filter
		Filter: Filter{
			BannedRegions:          []string{},
			MinAccountAgeDays:      365,
			MaxFollowers:           5000,
			MaxFollowing:           2000,
			TierOneFollowers:       50,
			TierOneContributions:   200,
			TierTwoFollowers:       500,
			TierTwoContributions:   400,
			TierThreeContributions: 600,
			MinActiveMonths:        8,
			WeekdayRatioCutoff:     0.9,
		},

		// Enrich
		Enrich: Enrich{
			LinkedinApiUrl:   "",
			LinkedinApiKey:   "",
			PoolSize:         2,
			PoolMaxUses:      25,
			ResearchMaxPages: 3,
		},

		// Llm
		Llm: Llm{
			ApiUrl:      "https://api.openai.com/v1/chat/completions",
			ApiKey:      "",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{},
			Producer: KafkaProducer{
				TopicLead: "leadgen.leads",
			},
		},

		// Api
		Api: Api{
			ListenAddr: ":8089",
		},
	}, nil
}
