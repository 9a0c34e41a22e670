package catalog

// GraphQL query strings for the catalog API.

const queryCharactersPage = `
query GetCharactersPage($page: Int!) {
	characters(page: $page) {
		info { count pages next prev }
		results { id name status species image }
	}
}`

const queryCharacterByID = `
query GetCharacter($id: ID!) {
	character(id: $id) {
		id
		name
		status
		species
		type
		gender
		origin { name type dimension }
		location { name type dimension }
		image
		episode { name air_date }
		created
	}
}`

const queryLocationsPage = `
query GetLocationsPage($page: Int!) {
	locations(page: $page) {
		info { count pages next prev }
		results { id name type dimension }
	}
}`

const queryLocationByID = `
query GetLocation($id: ID!) {
	location(id: $id) {
		id
		name
		type
		dimension
		residents { id name status species image }
	}
}`

const queryEpisodesPage = `
query GetEpisodesPage($page: Int!) {
	episodes(page: $page) {
		info { count pages next prev }
		results { id name air_date episode }
	}
}`

const queryEpisodeByID = `
query GetEpisode($id: ID!) {
	episode(id: $id) {
		id
		name
		air_date
		episode
		characters { id name status species image }
		created
	}
}`
