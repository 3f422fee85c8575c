// topic/fallback.go
package topic

// fallbackNames is the built-in topic pool used when the catalog cannot be
// fetched. Game start must never fail because the CDN is unreachable.
var fallbackNames = [][2]string{
	{"Aatrox", "the Darkin Blade"},
	{"Ahri", "the Nine-Tailed Fox"},
	{"Akali", "the Rogue Assassin"},
	{"Ashe", "the Frost Archer"},
	{"Blitzcrank", "the Great Steam Golem"},
	{"Braum", "the Heart of the Freljord"},
	{"Caitlyn", "the Sheriff of Piltover"},
	{"Darius", "the Hand of Noxus"},
	{"Draven", "the Glorious Executioner"},
	{"Ekko", "the Boy Who Shattered Time"},
	{"Ezreal", "the Prodigal Explorer"},
	{"Fiora", "the Grand Duelist"},
	{"Garen", "the Might of Demacia"},
	{"Jax", "Grandmaster at Arms"},
	{"Jhin", "the Virtuoso"},
	{"Jinx", "the Loose Cannon"},
	{"Katarina", "the Sinister Blade"},
	{"Kayn", "the Shadow Reaper"},
	{"Lee Sin", "the Blind Monk"},
	{"Leona", "the Radiant Dawn"},
	{"Lux", "the Lady of Luminosity"},
	{"Malphite", "Shard of the Monolith"},
	{"Master Yi", "the Wuju Bladesman"},
	{"Miss Fortune", "the Bounty Hunter"},
	{"Morgana", "the Fallen"},
	{"Nasus", "the Curator of the Sands"},
	{"Pyke", "the Bloodharbor Ripper"},
	{"Riven", "the Exile"},
	{"Sett", "the Boss"},
	{"Teemo", "the Swift Scout"},
	{"Thresh", "the Chain Warden"},
	{"Vayne", "the Night Hunter"},
	{"Yasuo", "the Unforgiven"},
	{"Yone", "the Unforgotten"},
	{"Zed", "the Master of Shadows"},
}

// FallbackPool returns a fresh copy of the static topic pool.
func FallbackPool() []Topic {
	pool := make([]Topic, len(fallbackNames))
	for i, entry := range fallbackNames {
		pool[i] = Topic{Key: entry[0], Name: entry[0], Title: entry[1]}
	}
	return pool
}
