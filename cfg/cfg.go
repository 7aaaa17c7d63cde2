package cfg

type (
	App struct {
		Name    string
		Version string
	}

	// Database selects the storage backend: "mysql" or "sqlite"
	Database struct {
		Driver string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	Sqlite struct {
		Path string
	}

	GithubApi struct {
		AccessToken       string
		ApiUrl            string
		GraphqlUrl        string
		RequestsPerSecond int
		ThrottleDelay     int
		RateLimitResetMin int
		PerPage           int
	}

	Crawler struct {
		Seeds               []string
		MaxDepth            int
		BatchSize           int
		ExpansionThreshold  float64
		FollowerThreshold   float64
		FollowingMultiplier float64
		FollowerMultiplier  float64
		SeedDefaultRating   float64
	}

	Filter struct {
		BannedRegions          []string
		MinAccountAgeDays      int
		MaxFollowers           int
		MaxFollowing           int
		TierOneFollowers       int
		TierOneContributions   int
		TierTwoFollowers       int
		TierTwoContributions   int
		TierThreeContributions int
		MinActiveMonths        int
		WeekdayRatioCutoff     float64
	}

	Enrich struct {
		LinkedinApiUrl   string
		LinkedinApiKey   string
		PoolSize         int
		PoolMaxUses      int
		ResearchMaxPages int
	}

	Llm struct {
		ApiUrl      string
		ApiKey      string
		Model       string
		Temperature float64
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
	}

	KafkaProducer struct {
		TopicLead string
	}

	Api struct {
		ListenAddr string
	}
)

type Config struct {
	App       App
	Database  Database
	Mysql     Mysql
	Sqlite    Sqlite
	GithubApi GithubApi
	Crawler   Crawler
	Filter    Filter
	Enrich    Enrich
	Llm       Llm
	Kafka     Kafka
	Api       Api
}
