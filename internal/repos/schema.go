package repos

// DDL per backend. DML in the repos is portable and goes through Rebind, so
// only table definitions differ.
var schemas = map[string][]string{
	"sqlite":   sqliteSchema,
	"mysql":    mysqlSchema,
	"postgres": postgresSchema,
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  brand TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('M','L','TV','TW','BW','SH','WW')),
  selling_price NUMERIC NOT NULL CHECK (selling_price >= 0),
  discounted_price NUMERIC NOT NULL CHECK (discounted_price >= 0),
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	`CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand)`,
	`CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS addresses(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  locality TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  zipcode TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id)`,
	`CREATE TABLE IF NOT EXISTS cart_lines(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  version INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (user_id, product_id)
)`,
	`CREATE TABLE IF NOT EXISTS placed_orders(
  id TEXT PRIMARY KEY,
  checkout_id TEXT NOT NULL,
  user_id TEXT NOT NULL REFERENCES users(id),
  address_id TEXT NOT NULL REFERENCES addresses(id),
  product_id TEXT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL,
  placed_at TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING'
)`,
	`CREATE INDEX IF NOT EXISTS idx_placed_orders_user ON placed_orders(user_id, placed_at)`,
	`CREATE TABLE IF NOT EXISTS outbox(
  id TEXT PRIMARY KEY,
  topic TEXT NOT NULL,
  msg_key TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL,
  sent_at TEXT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at, created_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products(
  id VARCHAR(64) PRIMARY KEY,
  title VARCHAR(255) NOT NULL,
  brand VARCHAR(64) NOT NULL,
  category VARCHAR(2) NOT NULL,
  selling_price DECIMAL(12,2) NOT NULL,
  discounted_price DECIMAL(12,2) NOT NULL,
  description TEXT NOT NULL,
  image VARCHAR(255) NOT NULL DEFAULT '',
  INDEX idx_products_category (category),
  INDEX idx_products_brand (brand)
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS users(
  id VARCHAR(64) PRIMARY KEY,
  email VARCHAR(255) NOT NULL UNIQUE,
  name VARCHAR(64) NOT NULL,
  password_hash VARCHAR(100) NOT NULL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS sessions(
  id VARCHAR(64) PRIMARY KEY,
  user_id VARCHAR(64) NULL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  last_seen VARCHAR(40),
  INDEX idx_sessions_user (user_id),
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS addresses(
  id VARCHAR(64) PRIMARY KEY,
  user_id VARCHAR(64) NOT NULL,
  name VARCHAR(64) NOT NULL,
  locality VARCHAR(200) NOT NULL,
  city VARCHAR(64) NOT NULL,
  state VARCHAR(64) NOT NULL,
  zipcode VARCHAR(10) NOT NULL,
  INDEX idx_addresses_user (user_id),
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS cart_lines(
  id VARCHAR(64) PRIMARY KEY,
  user_id VARCHAR(64) NOT NULL,
  product_id VARCHAR(64) NOT NULL,
  quantity INT NOT NULL CHECK (quantity >= 1),
  version INT NOT NULL DEFAULT 1,
  created_at VARCHAR(40) NOT NULL,
  updated_at VARCHAR(40) NOT NULL,
  UNIQUE KEY uq_cart_user_product (user_id, product_id),
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
  FOREIGN KEY (product_id) REFERENCES products(id)
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS placed_orders(
  id VARCHAR(64) PRIMARY KEY,
  checkout_id VARCHAR(64) NOT NULL,
  user_id VARCHAR(64) NOT NULL,
  address_id VARCHAR(64) NOT NULL,
  product_id VARCHAR(64) NOT NULL,
  quantity INT NOT NULL CHECK (quantity >= 1),
  unit_price DECIMAL(12,2) NOT NULL,
  placed_at VARCHAR(40) NOT NULL,
  status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
  INDEX idx_placed_orders_user (user_id, placed_at),
  FOREIGN KEY (user_id) REFERENCES users(id),
  FOREIGN KEY (address_id) REFERENCES addresses(id),
  FOREIGN KEY (product_id) REFERENCES products(id)
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS outbox(
  id VARCHAR(64) PRIMARY KEY,
  topic VARCHAR(128) NOT NULL,
  msg_key VARCHAR(128) NOT NULL,
  payload TEXT NOT NULL,
  created_at VARCHAR(40) NOT NULL,
  sent_at VARCHAR(40) NULL,
  INDEX idx_outbox_pending (sent_at, created_at)
) ENGINE=InnoDB`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  brand TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('M','L','TV','TW','BW','SH','WW')),
  selling_price NUMERIC(12,2) NOT NULL,
  discounted_price NUMERIC(12,2) NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	`CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand)`,
	`CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ DEFAULT now(),
  last_seen TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS addresses(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  locality TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  zipcode TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id)`,
	`CREATE TABLE IF NOT EXISTS cart_lines(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  version INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (user_id, product_id)
)`,
	`CREATE TABLE IF NOT EXISTS placed_orders(
  id TEXT PRIMARY KEY,
  checkout_id TEXT NOT NULL,
  user_id TEXT NOT NULL REFERENCES users(id),
  address_id TEXT NOT NULL REFERENCES addresses(id),
  product_id TEXT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC(12,2) NOT NULL,
  placed_at TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING'
)`,
	`CREATE INDEX IF NOT EXISTS idx_placed_orders_user ON placed_orders(user_id, placed_at)`,
	`CREATE TABLE IF NOT EXISTS outbox(
  id TEXT PRIMARY KEY,
  topic TEXT NOT NULL,
  msg_key TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL,
  sent_at TEXT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at, created_at)`,
}
