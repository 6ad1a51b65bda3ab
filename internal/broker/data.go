package broker

import "github.com/Rank127/datascrub-pro-sub004/internal/model"

// builtinEntries is the shipped broker directory. Operators extend or
// correct it through the YAML config file without a release.
//
// Difficulty and processing estimates come from observed opt-out turnaround
// across removal campaigns, not from the brokers' own claims.
var builtinEntries = []model.BrokerEntry{
	// PeopleConnect family: one opt-out at the parent covers all brands.
	// The parent itself hosts no consumer search; its brands are scanned
	// individually.
	{
		Source:         "peopleconnect",
		DisplayName:    "PeopleConnect",
		Subsidiaries:   []string{"truthfinder", "instantcheckmate", "intelius", "ussearch"},
		Difficulty:     model.DifficultyModerate,
		ProcessingDays: 14,
		OptOutForm:     "https://suppression.peopleconnect.us/login",
	},
	{
		Source:         "truthfinder",
		DisplayName:    "TruthFinder",
		Parent:         "peopleconnect",
		Difficulty:     model.DifficultyModerate,
		ProcessingDays: 14,
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.truthfinder.com/results",
	},
	{
		Source:         "instantcheckmate",
		DisplayName:    "Instant Checkmate",
		Parent:         "peopleconnect",
		Difficulty:     model.DifficultyModerate,
		ProcessingDays: 14,
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.instantcheckmate.com/results",
	},
	{
		Source:         "intelius",
		DisplayName:    "Intelius",
		Parent:         "peopleconnect",
		Difficulty:     model.DifficultyModerate,
		ProcessingDays: 14,
		ScannerKind:    model.ScannerDynamicBroker,
		SearchEndpoint: "https://api.intelius.com/search/jobs",
	},
	{
		Source:         "ussearch",
		DisplayName:    "US Search",
		Parent:         "peopleconnect",
		Difficulty:     model.DifficultyModerate,
		ProcessingDays: 14,
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.ussearch.com/search",
	},

	// Whitepages family.
	{
		Source:         "whitepages",
		DisplayName:    "Whitepages",
		Subsidiaries:   []string{"411com"},
		Difficulty:     model.DifficultyEasy,
		ProcessingDays: 7,
		OptOutForm:     "https://www.whitepages.com/suppression-requests",
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.whitepages.com/name",
	},
	{
		Source:         "411com",
		DisplayName:    "411.com",
		Parent:         "whitepages",
		Difficulty:     model.DifficultyEasy,
		ProcessingDays: 7,
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.411.com/name",
	},

	// Standalone brokers.
	{
		Source:         "spokeo",
		DisplayName:    "Spokeo",
		Difficulty:     model.DifficultyEasy,
		ProcessingDays: 3,
		OptOutForm:     "https://www.spokeo.com/optout",
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.spokeo.com/search",
	},
	{
		Source:         "beenverified",
		DisplayName:    "BeenVerified",
		Difficulty:     model.DifficultyEasy,
		ProcessingDays: 7,
		OptOutForm:     "https://www.beenverified.com/app/optout/search",
		ScannerKind:    model.ScannerDynamicBroker,
		SearchEndpoint: "https://api.beenverified.com/search/jobs",
	},
	{
		Source:         "radaris",
		DisplayName:    "Radaris",
		Difficulty:     model.DifficultyHard,
		ProcessingDays: 30,
		PrivacyEmail:   "support@radaris.com",
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://radaris.com/ng/search",
	},
	{
		Source:         "fastpeoplesearch",
		DisplayName:    "FastPeopleSearch",
		Difficulty:     model.DifficultyEasy,
		ProcessingDays: 3,
		OptOutForm:     "https://www.fastpeoplesearch.com/removal",
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.fastpeoplesearch.com/name",
	},
	{
		Source:         "peoplefinder",
		DisplayName:    "PeopleFinder",
		Difficulty:     model.DifficultyModerate,
		ProcessingDays: 14,
		PrivacyEmail:   "privacy@peoplefinder.com",
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.peoplefinder.com/search",
	},
	{
		Source:         "mylife",
		DisplayName:    "MyLife",
		Difficulty:     model.DifficultyHard,
		ProcessingDays: 45,
		ScannerKind:    model.ScannerStaticBroker,
		SearchEndpoint: "https://www.mylife.com/pub-multisearch",
	},

	// Breach and dark-web sources. These have no removal flow at all;
	// exposure there is handled by credential rotation guidance.
	{
		Source:         "breachindex",
		DisplayName:    "Breach Index",
		Difficulty:     model.DifficultyHard,
		ScannerKind:    model.ScannerBreachDB,
		SearchEndpoint: "https://api.breachindex.io/v2/account",
	},
	{
		Source:         "darkmarket-watch",
		DisplayName:    "Dark Market Watch",
		Difficulty:     model.DifficultyHard,
		ScannerKind:    model.ScannerDarkWeb,
		SearchEndpoint: "http://dmwatchl4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyyd.onion/search",
	},
	{
		Source:         "pastebin-onion",
		DisplayName:    "Onion Paste Index",
		Difficulty:     model.DifficultyHard,
		ScannerKind:    model.ScannerDarkWeb,
		SearchEndpoint: "http://pasteidxl4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyyd.onion/q",
	},
}
