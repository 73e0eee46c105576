package ti4

// Colors is the fixed plastic-color palette. Not required unique per
// game, but the UI steers players toward unused ones.
var Colors = []string{
	"red",
	"blue",
	"green",
	"yellow",
	"purple",
	"black",
	"orange",
	"pink",
}

func ValidColor(color string) bool {
	for _, c := range Colors {
		if c == color {
			return true
		}
	}
	return false
}

// Factions lists the playable factions, base game plus Prophecy of Kings.
// The faction field on a player is a free-form label; this list only
// feeds pickers on the client side.
var Factions = []string{
	"The Arborec",
	"The Argent Flight",
	"The Barony of Letnev",
	"The Clan of Saar",
	"The Embers of Muaat",
	"The Emirates of Hacan",
	"The Federation of Sol",
	"The Ghosts of Creuss",
	"The L1Z1X Mindnet",
	"The Mentak Coalition",
	"The Naalu Collective",
	"The Nekro Virus",
	"Sardakk N'orr",
	"The Universities of Jol-Nar",
	"The Winnu",
	"The Xxcha Kingdom",
	"The Yin Brotherhood",
	"The Yssaril Tribes",
	"The Council Keleres",
	"The Empyrean",
	"The Mahact Gene-Sorcerers",
	"The Naaz-Rokha Alliance",
	"The Nomad",
	"The Titans of Ul",
	"The Vuil'raith Cabal",
}
